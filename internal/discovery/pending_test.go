package discovery

import (
	"testing"

	"github.com/corey/mediascout/internal/ports"
	"github.com/stretchr/testify/assert"
)

func TestPendingSet_LastKindWins(t *testing.T) {
	p := newPendingSet()

	p.Record("/m/created-then-removed.mkv", ports.OpCreated)
	p.Record("/m/created-then-removed.mkv", ports.OpRemoved)
	p.Record("/m/created-then-modified.mkv", ports.OpCreated)
	p.Record("/m/created-then-modified.mkv", ports.OpModified)
	p.Record("/m/renamed-away.mkv", ports.OpCreated)
	p.Record("/m/renamed-away.mkv", ports.OpRenamed)
	p.Record("/m/removed-then-recreated.mkv", ports.OpRemoved)
	p.Record("/m/removed-then-recreated.mkv", ports.OpCreated)

	assert.Equal(t, 4, p.Len())
	assert.Equal(t, []change{
		{Path: "/m/created-then-modified.mkv", Present: true},
		{Path: "/m/created-then-removed.mkv", Present: false},
		{Path: "/m/removed-then-recreated.mkv", Present: true},
		{Path: "/m/renamed-away.mkv", Present: false},
	}, p.Drain())
	assert.Zero(t, p.Len(), "drain empties the set")
	assert.Nil(t, p.Drain())
}

func TestPendingSet_Clear(t *testing.T) {
	p := newPendingSet()
	p.Record("/m/a.mkv", ports.OpCreated)

	p.Clear()

	assert.Zero(t, p.Len())
	assert.Nil(t, p.Drain())
}
