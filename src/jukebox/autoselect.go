package jukebox

import (
	"context"

	log "github.com/sirupsen/logrus"

	"spotit/src/player"
)

// AutoSelect selects the first track of the queue whenever the queue holds
// tracks but nothing is selected, for example at startup or after the first
// track has been appended to an empty queue.
//
// AutoSelect blocks until the context is done.
func (jb *Jukebox) AutoSelect(ctx context.Context) {
	events := jb.session.Events().Listen(ctx)
	jb.autoSelect(ctx)
	for event := range events {
		if _, ok := event.(player.QueueEvent); !ok {
			continue
		}
		jb.autoSelect(ctx)
	}
}

func (jb *Jukebox) autoSelect(ctx context.Context) {
	status := jb.session.Status()
	if status.Index != -1 || jb.session.Queue().Len() == 0 {
		return
	}
	if err := jb.session.SelectIndex(ctx, 0); err != nil {
		log.Errorf("Auto select: %v", err)
		return
	}
	log.Debugf("Auto selected the first track")
}
