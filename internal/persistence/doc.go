// Package persistence encodes the restart-recovery data of the audio
// classes and keeps it in SQLite.
//
// Four strings are stored, one per key:
//
//	lastMainConnection        {BASE,radio:amp;nav:amp;}
//	lastMainConnectionVolume  {BASE,[amp:10][rear:20]}
//	lastMainSoundProperty     {BASE,[ET_SINK_amp=(1:5)(2:6)]}
//	lastSystemProperty        {(1:0)(2:3)}
//
// Several classes concatenate their blocks. The controller writes them at
// shutdown and replays them as triggers after domain registration.
package persistence
