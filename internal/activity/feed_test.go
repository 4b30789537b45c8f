package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/closetrack/closetrack/internal/task"
)

func ts(minute int) time.Time {
	return time.Date(2026, 3, 5, 10, minute, 0, 0, time.UTC)
}

func TestBuildFeedOrdersNewestFirst(t *testing.T) {
	ref := TaskRef{ID: "t-1", Title: "Reconcile bank accounts"}
	feed := BuildFeed([]TaskActivity{
		{
			Task: ref,
			StatusHistory: []task.StatusChange{
				{ID: "sc-1", TaskID: "t-1", ToStatus: task.StatusInProgress, ChangedAt: ts(1)},
				{ID: "sc-2", TaskID: "t-1", ToStatus: task.StatusDone, ChangedAt: ts(3)},
			},
			Comments: []task.Comment{
				{ID: "cm-1", TaskID: "t-1", Content: "halfway there", CreatedAt: ts(2)},
			},
		},
	})

	require.Len(t, feed, 3)
	assert.Equal(t, KindStatusChange, feed[0].Kind)
	assert.Equal(t, "sc-2", feed[0].StatusChange.ID)
	assert.Equal(t, KindComment, feed[1].Kind)
	assert.Equal(t, "cm-1", feed[1].Comment.ID)
	assert.Equal(t, KindStatusChange, feed[2].Kind)
	assert.Equal(t, "sc-1", feed[2].StatusChange.ID)
}

func TestBuildFeedMergesAcrossTasks(t *testing.T) {
	feed := BuildFeed([]TaskActivity{
		{
			Task:          TaskRef{ID: "t-1", Title: "Reconcile bank accounts"},
			StatusHistory: []task.StatusChange{{ID: "sc-1", ChangedAt: ts(5)}},
		},
		{
			Task:     TaskRef{ID: "t-2", Title: "Accrue payroll"},
			Comments: []task.Comment{{ID: "cm-1", CreatedAt: ts(7)}},
		},
	})

	require.Len(t, feed, 2)
	assert.Equal(t, "t-2", feed[0].Task.ID)
	assert.Equal(t, "t-1", feed[1].Task.ID)
}

func TestBuildFeedStableOnEqualTimestamps(t *testing.T) {
	ref := TaskRef{ID: "t-1", Title: "Reconcile bank accounts"}
	feed := BuildFeed([]TaskActivity{
		{
			Task:          ref,
			StatusHistory: []task.StatusChange{{ID: "sc-1", ChangedAt: ts(4)}},
			Comments:      []task.Comment{{ID: "cm-1", CreatedAt: ts(4)}},
		},
	})

	// Ties keep collection order: history entries ahead of comments.
	require.Len(t, feed, 2)
	assert.Equal(t, KindStatusChange, feed[0].Kind)
	assert.Equal(t, KindComment, feed[1].Kind)
}

func TestBuildFeedEmpty(t *testing.T) {
	assert.Empty(t, BuildFeed(nil))
	assert.Empty(t, BuildFeed([]TaskActivity{{Task: TaskRef{ID: "t-1"}}}))
}
