package egress

import (
	"math/rand/v2"
	"testing"

	"github.com/entrhq/viewbot/pkg/config"
	"github.com/entrhq/viewbot/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRotator(endpoints ...string) *Rotator {
	return New(endpoints, rand.New(rand.NewPCG(7, 11)), logging.NewNop())
}

func TestRotator_Empty(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := New(nil, rand.New(rand.NewPCG(1, 1)), logging.NewWithCore(core))

	assert.False(t, r.HasEndpoints())
	assert.Equal(t, 0, r.Count())

	ep, ok := r.Random()
	assert.False(t, ok)
	assert.Empty(t, ep)

	ep, ok = r.Next()
	assert.False(t, ok)
	assert.Empty(t, ep)

	assert.Equal(t, 2, logs.FilterMessage("No proxies available").Len())
}

func TestRotator_NextWraps(t *testing.T) {
	list := []string{"p1:8080", "p2:3128", "p3:1080"}
	r := newRotator(list...)

	var got []string
	for i := 0; i < len(list)+1; i++ {
		ep, ok := r.Next()
		require.True(t, ok)
		got = append(got, ep)
	}

	assert.Equal(t, list, got[:len(list)])
	assert.Equal(t, got[0], got[len(list)])
}

func TestRotator_NextSingle(t *testing.T) {
	r := newRotator("only:1")
	for i := 0; i < 3; i++ {
		ep, ok := r.Next()
		require.True(t, ok)
		assert.Equal(t, "only:1", ep)
	}
}

func TestRotator_RandomStaysInList(t *testing.T) {
	list := []string{"proxy1:8080", "proxy2:3128"}
	r := newRotator(list...)

	assert.True(t, r.HasEndpoints())
	assert.Equal(t, 2, r.Count())

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ep, ok := r.Random()
		require.True(t, ok)
		assert.Contains(t, list, ep)
		seen[ep] = true
	}
	assert.Len(t, seen, 2)
}

func TestRotator_RandomDoesNotMoveCursor(t *testing.T) {
	r := newRotator("a:1", "b:2")
	_, _ = r.Random()
	_, _ = r.Random()

	ep, _ := r.Next()
	assert.Equal(t, "a:1", ep)
}

func TestRotator_Pick(t *testing.T) {
	r := newRotator("a:1", "b:2")

	ep, ok := r.Pick(config.ProxyModeRoundRobin)
	require.True(t, ok)
	assert.Equal(t, "a:1", ep)
	ep, _ = r.Pick(config.ProxyModeRoundRobin)
	assert.Equal(t, "b:2", ep)

	ep, ok = r.Pick(config.ProxyModeRandom)
	require.True(t, ok)
	assert.Contains(t, []string{"a:1", "b:2"}, ep)
}

func TestRotator_CopiesInput(t *testing.T) {
	list := []string{"a:1"}
	r := newRotator(list...)
	list[0] = "changed:2"

	ep, _ := r.Next()
	assert.Equal(t, "a:1", ep)
}

func TestNew_SkipsUnusableEndpoints(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := New([]string{
		"10.0.0.1:8080:user:pass",
		"user:secret@good.local:3128",
		"host-without-port",
	}, rand.New(rand.NewPCG(1, 1)), logging.NewWithCore(core))

	assert.Equal(t, 1, r.Count())
	ep, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, "user:secret@good.local:3128", ep)

	skipped := logs.FilterMessageSnippet("Skipping unusable proxy")
	assert.Equal(t, 2, skipped.Len())
	for _, e := range skipped.All() {
		assert.NotContains(t, e.Message, "secret")
	}
}

func TestValidateFormat(t *testing.T) {
	assert.False(t, ValidateFormat(""))
	assert.False(t, ValidateFormat("host"))
	assert.True(t, ValidateFormat("host:8080"))
	assert.True(t, ValidateFormat("user:pass@host:8080"))
}
