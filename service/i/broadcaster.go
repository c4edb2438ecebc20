package i

// Broadcaster fans a payload out to every connected renderer.
type Broadcaster interface {
	Broadcast([]byte)
}
