package resource

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tracker counts destructions per resource id.
type tracker struct {
	destroyed map[int]int
}

func newTracker() *tracker {
	return &tracker{destroyed: make(map[int]int)}
}

func (tr *tracker) destroy(id int) {
	tr.destroyed[id]++
}

func TestAdoptAndClose(t *testing.T) {
	tr := newTracker()
	h := Adopt(1, tr.destroy)

	require.True(t, h.Valid())
	assert.Equal(t, 1, h.Get())

	require.NoError(t, h.Close())
	assert.False(t, h.Valid())
	assert.Equal(t, 1, tr.destroyed[1])

	// Closing again must not destroy twice.
	require.NoError(t, h.Close())
	assert.Equal(t, 1, tr.destroyed[1])
}

func TestReleaseHandsOwnershipOut(t *testing.T) {
	tr := newTracker()
	h := Adopt(7, tr.destroy)

	got := h.Release()
	assert.Equal(t, 7, got)
	assert.False(t, h.Valid())

	require.NoError(t, h.Close())
	assert.Zero(t, tr.destroyed[7], "released resource must not be destroyed by the handle")
}

func TestResetDestroysPrevious(t *testing.T) {
	tr := newTracker()
	h := Adopt(1, tr.destroy)

	h.Reset(2)
	assert.Equal(t, 1, tr.destroyed[1])
	assert.Equal(t, 2, h.Get())

	h.Clear()
	assert.Equal(t, 1, tr.destroyed[2])
	assert.False(t, h.Valid())
}

func TestMoveLeavesSourceEmpty(t *testing.T) {
	tr := newTracker()
	src := Adopt(3, tr.destroy)

	dst := src.Move()
	assert.False(t, src.Valid())
	assert.True(t, dst.Valid())

	require.NoError(t, src.Close())
	assert.Zero(t, tr.destroyed[3])

	require.NoError(t, dst.Close())
	assert.Equal(t, 1, tr.destroyed[3])
}

func TestTake(t *testing.T) {
	tr := newTracker()
	a := Adopt(1, tr.destroy)
	b := Adopt(2, tr.destroy)

	a.Take(b)
	assert.Equal(t, 1, tr.destroyed[1])
	assert.Equal(t, 2, a.Get())
	assert.False(t, b.Valid())

	a.Take(a)
	assert.True(t, a.Valid())
	assert.Zero(t, tr.destroyed[2])
}

func TestAdoptPtrNilIsEmpty(t *testing.T) {
	calls := 0
	h := AdoptPtr[int](nil, func(*int) { calls++ })
	assert.False(t, h.Valid())
	require.NoError(t, h.Close())
	assert.Zero(t, calls)
}

func TestPointerHandleResetNilIsEmpty(t *testing.T) {
	x, y := 1, 2
	var destroyed []*int
	h := AdoptPtr(&x, func(p *int) { destroyed = append(destroyed, p) })

	h.Reset(nil)
	assert.False(t, h.Valid())
	assert.Equal(t, []*int{&x}, destroyed)

	require.NoError(t, h.Close())
	assert.Equal(t, []*int{&x}, destroyed, "destroy must never see nil")

	// the nil check survives Move and Take
	h.Reset(&y)
	moved := h.Move()
	moved.Reset(nil)
	assert.False(t, moved.Valid())

	other := Empty[*int](nil)
	other.Take(AdoptPtr(&y, func(p *int) { destroyed = append(destroyed, p) }))
	other.Reset(nil)
	assert.False(t, other.Valid())
	assert.Equal(t, []*int{&x, &y, &y}, destroyed)
}

func TestNilHandleClose(t *testing.T) {
	var h *Handle[int]
	assert.NoError(t, h.Close())
	assert.False(t, h.Valid())
}

// TestDestroyedExactlyOnce drives random sequences of handle operations and
// checks that every adopted resource ends up destroyed exactly once, except
// the ones explicitly released to the caller.
func TestDestroyedExactlyOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		tr := newTracker()
		released := make(map[int]bool)
		nextID := 1
		handles := []*Handle[int]{Empty(tr.destroy), Empty(tr.destroy)}

		for step := 0; step < 30; step++ {
			i := rng.Intn(len(handles))
			j := rng.Intn(len(handles))
			switch rng.Intn(6) {
			case 0:
				handles[i].Reset(nextID)
				nextID++
			case 1:
				if handles[i].Valid() {
					released[handles[i].Release()] = true
				}
			case 2:
				handles = append(handles, handles[i].Move())
			case 3:
				handles[i].Take(handles[j])
			case 4:
				handles[i].Clear()
			case 5:
				_ = handles[i].Close()
			}
		}
		for _, h := range handles {
			_ = h.Close()
		}

		for id := 1; id < nextID; id++ {
			if released[id] {
				assert.Zero(t, tr.destroyed[id], "round %d: released id %d destroyed", round, id)
				continue
			}
			assert.Equal(t, 1, tr.destroyed[id], "round %d: id %d", round, id)
		}
	}
}
