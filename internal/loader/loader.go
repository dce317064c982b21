package loader

import (
	"time"

	"github.com/roach88/plenar/internal/logger"
	"github.com/roach88/plenar/internal/store"
)

// Entity names used in reports and logs.
const (
	EntityProtocol   = "protocol"
	EntityAgendaItem = "agenda_item"
	EntitySpeech     = "speech"
	EntitySpeaker    = "speaker"
)

// Loader runs the batch loaders against one store.
type Loader struct {
	store *store.Store
	log   *logger.Logger
	ids   RunIDGenerator
}

// New creates a Loader. The store handle is shared by every run and is
// not closed by the Loader.
func New(s *store.Store, log *logger.Logger, ids RunIDGenerator) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	return &Loader{store: s, log: log, ids: ids}
}

// start opens a run for entity reading from source.
func (l *Loader) start(entity, source string) *run {
	id := l.ids.Generate()
	log := l.log.With("run_id", id, "entity", entity)
	log.Info("load started", "source", source)
	return &run{
		rep:     &Report{RunID: id, Entity: entity, Source: source},
		log:     log,
		started: time.Now(),
	}
}
