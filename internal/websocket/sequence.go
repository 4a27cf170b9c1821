package websocket

import (
	"sync"
	"sync/atomic"
)

var seqMap sync.Map // map[string]*atomic.Uint64

// nextSeq numbers the messages of a topic, starting at 1.
func nextSeq(topic string) uint64 {
	v, _ := seqMap.LoadOrStore(topic, new(atomic.Uint64))
	return v.(*atomic.Uint64).Add(1)
}
