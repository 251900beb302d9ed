package paperlog

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/paperlog/errors"
)

// TestPaperStore runs the behaviour every PaperStore implementation must
// have. store must be empty.
func TestPaperStore(t *testing.T, store PaperStore) {
	ctx := context.Background()

	year := 2017
	papers := []*Paper{
		{Title: "Attention Is All You Need", Authors: []Author{{Name: "Vaswani"}}, Year: &year, Category: "NLP"},
		{Title: "Deep Residual Learning", Authors: []Author{{Name: "He"}}, Category: "CV"},
		{Title: "No category"},
	}

	// Insert papers
	for _, paper := range papers {
		require.NoError(t, store.Add(ctx, paper))
		assert.NotEmpty(t, paper.ID, "adding should set the id")
		assert.False(t, paper.CreatedAt.IsZero(), "adding should set the creation date")
		assert.Equal(t, Unread, paper.Status, "new papers are unread")
	}

	testGetPaper(t, store, *papers[0])
	testGetUnknownPaper(t, store)
	testListOrder(t, store, papers)
	testEditPaper(t, store, papers[1].ID)
	testSaveNote(t, store, papers[2].ID)
	testStatusCycle(t, store, papers[0].ID)
	testSubscribe(t, store)

	// Delete
	require.NoError(t, store.Delete(ctx, papers[1].ID))
	_, err := store.Get(ctx, papers[1].ID)
	errors.AssertCode(t, err, http.StatusNotFound)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	err = store.Update(ctx, papers[1].ID, Update{Note: new(string)})
	errors.AssertCode(t, err, http.StatusNotFound)
}

func testGetPaper(t *testing.T, store PaperStore, expected Paper) {
	paper, err := store.Get(context.Background(), expected.ID)
	require.NoError(t, err)

	assert.Equal(t, expected.ID, paper.ID)
	assert.Equal(t, expected.Title, paper.Title)
	assert.Equal(t, expected.Authors, paper.Authors)
	assert.Equal(t, expected.Category, paper.Category)
	if assert.NotNil(t, paper.Year) {
		assert.Equal(t, *expected.Year, *paper.Year)
	}
	assert.Nil(t, paper.CitationCount)
	assert.True(t, expected.CreatedAt.Equal(paper.CreatedAt), "creation date should be kept")
}

func testGetUnknownPaper(t *testing.T, store PaperStore) {
	_, err := store.Get(context.Background(), "not-an-id")
	errors.AssertCode(t, err, http.StatusNotFound)
}

func testListOrder(t *testing.T, store PaperStore, papers []*Paper) {
	list, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, len(papers))

	// Newest first
	for i, paper := range list {
		assert.Equal(t, papers[len(papers)-1-i].ID, paper.ID, "list position %d", i)
	}
}

func testEditPaper(t *testing.T, store PaperStore, id string) {
	citations := 1234
	edit := Edit{
		Title:         "Deep Residual Learning for Image Recognition",
		Authors:       []Author{{Name: "He"}, {Name: "Zhang"}},
		URL:           "https://arxiv.org/abs/1512.03385",
		CitationCount: &citations,
		Category:      "Vision",
	}
	require.NoError(t, store.Update(context.Background(), id, Update{Edit: &edit}))

	paper, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, edit.Title, paper.Title)
	assert.Equal(t, edit.Authors, paper.Authors)
	assert.Equal(t, edit.URL, paper.URL)
	assert.Nil(t, paper.Year)
	if assert.NotNil(t, paper.CitationCount) {
		assert.Equal(t, citations, *paper.CitationCount)
	}
	assert.Equal(t, "Vision", paper.Category)
	assert.Equal(t, Unread, paper.Status, "an edit should not touch the status")
}

func testSaveNote(t *testing.T, store PaperStore, id string) {
	note := "# Notes\n\nSome $x^2$ math"
	require.NoError(t, store.Update(context.Background(), id, Update{Note: &note}))

	paper, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, note, paper.Note)
	assert.Equal(t, "No category", paper.Title, "saving a note should not touch the title")
}

func testStatusCycle(t *testing.T, store PaperStore, id string) {
	ctx := context.Background()

	current := Unread
	for i := 0; i < len(StatusCycle); i++ {
		before := time.Now()
		next, u := Transition(current)
		require.NoError(t, store.Update(ctx, id, u))

		paper, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, next, paper.Status)

		if next == Read {
			if assert.NotNil(t, paper.ReadAt, "entering read should set the read date") {
				assert.False(t, paper.ReadAt.Before(before.Add(-time.Second)), "read date should be the time of the write")
			}
		} else {
			assert.Nil(t, paper.ReadAt, "status %s should not have a read date", next)
		}
		current = next
	}
	assert.Equal(t, Unread, current, "the cycle should be closed")
}

func testSubscribe(t *testing.T, store PaperStore) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := store.Subscribe(ctx)

	initial := receive(t, sub)
	count := len(initial)

	paper := Paper{Title: "Subscribed"}
	require.NoError(t, store.Add(ctx, &paper))

	snapshot := receive(t, sub)
	require.Len(t, snapshot, count+1, "the snapshot should contain the new paper")
	assert.Equal(t, paper.ID, snapshot[0].ID, "the new paper should come first")

	require.NoError(t, store.Delete(ctx, paper.ID))
	snapshot = receive(t, sub)
	assert.Len(t, snapshot, count)

	sub.Close()
}

func receive(t *testing.T, sub *Subscription) []Paper {
	select {
	case papers := <-sub.C:
		return papers
	case err := <-sub.Err:
		t.Fatal("subscription error:", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot received")
	}
	return nil
}
