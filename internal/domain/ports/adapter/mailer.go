package adapter

// Mailer is the fire-and-forget e-mail collaborator. Failures are the
// caller's to log; nothing authoritative may depend on delivery.
type Mailer interface {
	Send(to, subject, body string) error
}

// Pusher fans a named event out to every open live-update channel of one
// user. Delivery is at-most-once per channel.
type Pusher interface {
	Push(userID, event string, payload interface{})
}
