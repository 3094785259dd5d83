package credential

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	lines   []string
	secrets []string
	asked   []string
}

func (f *fakeReader) ReadLine(prompt string) (string, error) {
	f.asked = append(f.asked, prompt)
	if len(f.lines) == 0 {
		return "", errors.New("EOF")
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func (f *fakeReader) ReadSecret(prompt string) (string, error) {
	f.asked = append(f.asked, prompt)
	if len(f.secrets) == 0 {
		return "", errors.New("EOF")
	}
	s := f.secrets[0]
	f.secrets = f.secrets[1:]
	return s, nil
}

func TestStatic(t *testing.T) {
	secret, err := Static("hunter2").Resolve(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", secret)

	_, err = Static("").Resolve(context.Background(), "admin")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestEnv(t *testing.T) {
	t.Setenv(EnvPassword, "from-env")

	secret, err := Env{}.Resolve(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "from-env", secret)

	_, err = Env{Var: "NBRSNAP_TEST_UNSET_VAR"}.Resolve(context.Background(), "admin")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestChain(t *testing.T) {
	ctx := context.Background()

	secret, err := Chain{Static(""), nil, Static("second")}.Resolve(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "second", secret)

	_, err = Chain{Static("")}.Resolve(ctx, "admin")
	assert.ErrorIs(t, err, ErrNoSecret)

	boom := errors.New("terminal closed")
	failing := ProviderFunc(func(context.Context, string) (string, error) { return "", boom })
	_, err = Chain{failing, Static("never")}.Resolve(ctx, "admin")
	assert.ErrorIs(t, err, boom)
}

func TestCachedPromptsOncePerUsername(t *testing.T) {
	reader := &fakeReader{secrets: []string{"pw-admin", "pw-ops"}}
	p := NewCached(NewPrompt(reader))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		secret, err := p.Resolve(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, "pw-admin", secret)
	}
	secret, err := p.Resolve(ctx, "ops")
	require.NoError(t, err)
	assert.Equal(t, "pw-ops", secret)

	assert.Equal(t, []string{"Password for admin: ", "Password for ops: "}, reader.asked)
}

func TestPromptEmptySecret(t *testing.T) {
	_, err := NewPrompt(&fakeReader{secrets: []string{""}}).Resolve(context.Background(), "admin")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestPromptCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := &fakeReader{secrets: []string{"unused"}}
	_, err := NewPrompt(reader).Resolve(ctx, "admin")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reader.asked)
}

func TestUsername(t *testing.T) {
	name, err := Username(nil, "", "  netops ", "other")
	require.NoError(t, err)
	assert.Equal(t, "netops", name)

	_, err = Username(nil, "", " ")
	assert.ErrorIs(t, err, ErrNoUsername)

	name, err = Username(&fakeReader{lines: []string{" typed "}})
	require.NoError(t, err)
	assert.Equal(t, "typed", name)

	_, err = Username(&fakeReader{lines: []string{""}})
	assert.ErrorIs(t, err, ErrNoUsername)
}
