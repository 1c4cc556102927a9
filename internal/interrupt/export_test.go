package interrupt

// NotifyWith exposes the injectable constructor for tests.
var NotifyWith = notifyWith
