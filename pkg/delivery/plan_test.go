package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttemptOrder(t *testing.T) {
	t.Parallel()

	t.Run("primary leads when under ceiling", func(t *testing.T) {
		t.Parallel()

		order := attemptOrder([]int{0, 0, 0}, []int{100, 500, 500}, 0)
		assert.Equal(t, []int{0, 1, 2}, order)
	})

	t.Run("primary skipped at ceiling", func(t *testing.T) {
		t.Parallel()

		order := attemptOrder([]int{100, 0, 0}, []int{100, 500, 500}, 0)
		assert.Equal(t, []int{1, 2}, order)
	})

	t.Run("rotation starts after last used secondary", func(t *testing.T) {
		t.Parallel()

		order := attemptOrder([]int{100, 0, 0, 0}, []int{100, 500, 500, 500}, 1)
		assert.Equal(t, []int{2, 3, 1}, order)

		order = attemptOrder([]int{100, 0, 0, 0}, []int{100, 500, 500, 500}, 3)
		assert.Equal(t, []int{1, 2, 3}, order)
	})

	t.Run("secondaries at ceiling are skipped", func(t *testing.T) {
		t.Parallel()

		order := attemptOrder([]int{100, 500, 3, 500}, []int{100, 500, 500, 500}, 0)
		assert.Equal(t, []int{2}, order)
	})

	t.Run("unreadable counters treated as exhausted", func(t *testing.T) {
		t.Parallel()

		order := attemptOrder([]int{-1, -1, 0}, []int{100, 500, 500}, 0)
		assert.Equal(t, []int{2}, order)
	})

	t.Run("everything exhausted yields empty plan", func(t *testing.T) {
		t.Parallel()

		order := attemptOrder([]int{100, 500, 500}, []int{100, 500, 500}, 0)
		assert.Empty(t, order)
	})

	t.Run("out of range rotation offset restarts sweep", func(t *testing.T) {
		t.Parallel()

		order := attemptOrder([]int{100, 0, 0}, []int{100, 500, 500}, 42)
		assert.Equal(t, []int{1, 2}, order)
	})

	t.Run("single channel ring", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []int{0}, attemptOrder([]int{5}, []int{100}, 0))
		assert.Empty(t, attemptOrder([]int{100}, []int{100}, 0))
	})
}
