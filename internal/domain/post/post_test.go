package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFragmentPairText(t *testing.T) {
	pair := FragmentPair{}
	assert.Equal(t, "", pair.MarkupText())
	assert.Equal(t, "", pair.ScriptText())
	assert.True(t, pair.Empty())

	pair = FragmentPair{Markup: Ptr("<p>hi</p>")}
	assert.Equal(t, "<p>hi</p>", pair.MarkupText())
	assert.False(t, pair.Empty())
	assert.True(t, pair.ScriptOnly().Empty())
}

func TestPostPairs(t *testing.T) {
	p := Post{
		ID:          "p1",
		HTMLExcerpt: Ptr("<div class=\"col-span-4\"></div>"),
		JSContent:   Ptr("draw()"),
		HTMLContent: Ptr("<p>body</p>"),
		Status:      StatusPublished,
	}

	assert.True(t, p.Published())
	assert.Equal(t, "", p.ExcerptPair().ScriptText())
	assert.Equal(t, "draw()", p.ContentPair().ScriptOnly().ScriptText())
	assert.Equal(t, "", p.ContentPair().ScriptOnly().MarkupText())
	assert.Equal(t, "<p>body</p>", p.ContentPair().MarkupOnly().MarkupText())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusDraft.Valid())
	assert.True(t, StatusPublished.Valid())
	assert.True(t, StatusArchived.Valid())
	assert.False(t, Status("deleted").Valid())
}
