package app

import (
	"gorm.io/gorm"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/data/graph"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/data/repos/notes"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/neo4jdb"
)

type Repos struct {
	Notes  notes.NoteRepo
	NoteKG *graph.NoteKGStore
}

func wireRepos(db *gorm.DB, graphClient *neo4jdb.Client, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Notes:  notes.NewNoteRepo(db, log),
		NoteKG: graph.NewNoteKGStore(graphClient, log),
	}
}
