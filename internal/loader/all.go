package loader

import (
	"context"
	"fmt"
)

// Sources names the inputs of a full load.
type Sources struct {
	DataDir     string
	SpeakerFile string // optional
}

type step struct {
	entity string
	load   func(context.Context, string) (*Report, error)
	source string
}

// LoadAll runs every loader in dependency order: protocols, agenda
// items (which ends with the backfill), speeches and, when a speaker
// file is given, speakers. It stops at the first fatal error and
// returns the reports of the runs that completed.
func (l *Loader) LoadAll(ctx context.Context, src Sources) ([]*Report, error) {
	steps := []step{
		{EntityProtocol, l.Protocols, src.DataDir},
		{EntityAgendaItem, l.AgendaItems, src.DataDir},
		{EntitySpeech, l.Speeches, src.DataDir},
	}
	if src.SpeakerFile != "" {
		steps = append(steps, step{EntitySpeaker, l.Speakers, src.SpeakerFile})
	} else {
		l.log.Info("no speaker file configured, skipping speakers")
	}

	var reports []*Report
	for _, s := range steps {
		rep, err := s.load(ctx, s.source)
		if err != nil {
			return reports, fmt.Errorf("load %s: %w", s.entity, err)
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
