// Package policy is the boundary between the controller and the policy
// engine that decides what to do about each trigger.
//
// The controller talks to a policy engine through Send: one hook per trigger
// kind plus the static element configuration used to seed the registry.
// The engine answers through Receive, which the controller implements: it
// queries element state and installs action lists with SetListActions.
//
// Two engines ship with the daemon:
//   - Default maps user requests one-to-one onto actions and registers the
//     statically configured elements of a domain when the domain appears.
//   - MQTTEngine forwards every hook to an external rule engine over MQTT
//     and installs the action lists it publishes back.
//
// Both read the static element configuration from a YAML file (see
// LoadStatic).
package policy
