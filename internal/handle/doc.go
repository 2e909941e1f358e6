// Package handle correlates asynchronous routing operations with the
// actions waiting for them.
//
// When an action issues an asynchronous request the routing side answers
// with a Handle. The action binds itself to that handle in the Store; the
// routing side's acknowledgement later arrives as Notify(handle, result),
// which removes the binding and delivers the result to the waiter exactly
// once. Acknowledgements for handles nobody waits on are logged and dropped.
package handle
