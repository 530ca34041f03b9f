package frame

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyHeightFloor(t *testing.T) {
	floors := []int{0, 1, 200, 640}
	heights := []float64{0, 1, 199, 200, 201, 450, 1080, 99999}

	for _, m := range floors {
		for _, h := range heights {
			p := Policy{InitialHeight: "100vh", MinHeightPx: m}
			want := int(math.Max(float64(m), h))
			assert.Equal(t, strconv.Itoa(want)+"px", p.Height(h), "floor=%d height=%v", m, h)
		}
	}
}

func TestPolicyHeightRounding(t *testing.T) {
	p := Policy{MinHeightPx: 200}

	assert.Equal(t, "451px", p.Height(450.5))
	assert.Equal(t, "450px", p.Height(450.49))
	assert.Equal(t, "200px", p.Height(199.6))
}

func TestPolicyHeightInvalidCountsAsZero(t *testing.T) {
	p := Policy{MinHeightPx: 200}

	assert.Equal(t, "200px", p.Height(math.NaN()))
	assert.Equal(t, "200px", p.Height(math.Inf(1)))
	assert.Equal(t, "200px", p.Height(math.Inf(-1)))
	assert.Equal(t, "200px", p.Height(-50))
}

func TestPolicyLocked(t *testing.T) {
	p := LockedPolicy(200)
	for _, h := range []float64{0, 1, 450, 10_000_000, math.NaN()} {
		assert.Equal(t, LockedHeight, p.Height(h))
	}
}

func TestPolicyNormalized(t *testing.T) {
	p := Policy{MinHeightPx: -10}.Normalized()
	assert.Equal(t, DefaultInitialHeight, p.InitialHeight)
	assert.Equal(t, 0, p.MinHeightPx)

	assert.Equal(t, "150px", ListingPolicy().Normalized().InitialHeight)
	assert.Equal(t, DefaultPolicy(), DefaultPolicy().Normalized())
}

func TestParsePx(t *testing.T) {
	n, ok := ParsePx("450px")
	assert.True(t, ok)
	assert.Equal(t, 450, n)

	_, ok = ParsePx("100vh")
	assert.False(t, ok)
	_, ok = ParsePx("abcpx")
	assert.False(t, ok)
}
