package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/nightwatch/internal/domain/model"
)

func TestSelectTargetJobs(t *testing.T) {
	keywords := []string{"multi-node-dpsk3.2-2node", "test_deepseek_v3_2_w8a8"}

	t.Run("substring match selects exactly the named jobs", func(t *testing.T) {
		jobs := []model.Job{
			{ID: 1, Name: "multi-node-dpsk3.2-2node-a"},
			{ID: 2, Name: "unrelated-job"},
		}

		got := SelectTargetJobs(jobs, keywords)

		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].Job.ID)
		assert.Equal(t, "multi-node-dpsk3.2-2node", got[0].Keyword)
	})

	t.Run("first keyword wins when several match", func(t *testing.T) {
		jobs := []model.Job{
			{ID: 3, Name: "multi-node-dpsk3.2-2node test_deepseek_v3_2_w8a8 combo"},
		}

		got := SelectTargetJobs(jobs, keywords)

		require.Len(t, got, 1)
		assert.Equal(t, "multi-node-dpsk3.2-2node", got[0].Keyword)
	})

	t.Run("output preserves job order", func(t *testing.T) {
		jobs := []model.Job{
			{ID: 10, Name: "run test_deepseek_v3_2_w8a8 on a3"},
			{ID: 11, Name: "lint"},
			{ID: 12, Name: "multi-node-dpsk3.2-2node-b"},
		}

		got := SelectTargetJobs(jobs, keywords)

		require.Len(t, got, 2)
		assert.Equal(t, int64(10), got[0].Job.ID)
		assert.Equal(t, int64(12), got[1].Job.ID)
	})

	t.Run("no jobs", func(t *testing.T) {
		assert.Empty(t, SelectTargetJobs(nil, keywords))
	})

	t.Run("no keywords", func(t *testing.T) {
		jobs := []model.Job{{ID: 1, Name: "anything"}}
		assert.Empty(t, SelectTargetJobs(jobs, nil))
	})
}
