package exec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closeAll(specs []*CommandSpec) {
	for _, s := range specs {
		s.closeStreams()
		for _, c := range s.closeAfterStart {
			_ = c.Close()
		}
		for _, c := range s.closeAfterRun {
			_ = c.Close()
		}
	}
}

func TestCmdsToSpecsPipeWiring(t *testing.T) {
	ctx := testContext()

	specs, err := CmdsToSpecs(ctx, []Token{
		Argv("cat", "a.txt"),
		Pipe(),
		Argv("grep", "x"),
		Pipe(),
		Argv("wc", "-l"),
	}, CaptureNone)
	require.NoError(t, err)
	defer closeAll(specs)

	require.Len(t, specs, 3)
	assert.Equal(t, []string{"cat", "a.txt"}, specs[0].Argv)
	assert.Equal(t, []string{"grep", "x"}, specs[1].Argv)
	assert.Equal(t, []string{"wc", "-l"}, specs[2].Argv)

	// Each pipe connects one stage's stdout to the next stage's stdin.
	assert.Equal(t, StreamHandle, specs[0].Stdout().Kind)
	assert.Equal(t, StreamHandle, specs[1].Stdin().Kind)
	assert.Equal(t, StreamHandle, specs[1].Stdout().Kind)
	assert.Equal(t, StreamHandle, specs[2].Stdin().Kind)
	assert.False(t, specs[0].Stdin().Set())
	assert.False(t, specs[2].Stdout().Set())

	assert.True(t, specs[2].LastInPipeline)
	assert.False(t, specs[0].LastInPipeline)
	for i, s := range specs {
		assert.Equal(t, i, s.PipelineIndex)
	}
}

func TestCmdsToSpecsBackground(t *testing.T) {
	ctx := testContext()

	specs, err := CmdsToSpecs(ctx, []Token{Argv("ls"), Amp()}, CaptureNone)
	require.NoError(t, err)
	defer closeAll(specs)

	require.Len(t, specs, 1)
	assert.True(t, specs[0].Background)
}

func TestCmdsToSpecsBackgroundInVector(t *testing.T) {
	ctx := testContext()

	specs, err := CmdsToSpecs(ctx, []Token{Argv("ls", "&")}, CaptureNone)
	require.NoError(t, err)
	defer closeAll(specs)

	require.Len(t, specs, 1)
	assert.Equal(t, []string{"ls"}, specs[0].Argv)
	assert.True(t, specs[0].Background)
}

func TestCmdsToSpecsDanglingPipe(t *testing.T) {
	_, err := CmdsToSpecs(testContext(), []Token{Argv("ls"), Pipe()}, CaptureNone)
	var berr *BuildError
	require.ErrorAs(t, err, &berr)
}

func TestCmdsToSpecsAmpersandNotLast(t *testing.T) {
	_, err := CmdsToSpecs(testContext(), []Token{
		Argv("ls"), Amp(), Pipe(), Argv("wc"),
	}, CaptureNone)
	var berr *BuildError
	require.ErrorAs(t, err, &berr)
}

func TestCmdsToSpecsEmpty(t *testing.T) {
	_, err := CmdsToSpecs(testContext(), nil, CaptureNone)
	var berr *BuildError
	require.ErrorAs(t, err, &berr)
}

func TestCmdsToSpecsBuildErrorClosesEarlierStreams(t *testing.T) {
	ctx := testContext()

	// The second stage carries a double redirect and must fail the whole
	// build before anything launches.
	_, err := CmdsToSpecs(ctx, []Token{
		Argv("cat", ">", "a.txt"),
		Pipe(),
		Argv("wc", ">", "b.txt", ">", "c.txt"),
	}, CaptureNone)
	var berr *BuildError
	require.ErrorAs(t, err, &berr)
}

func TestCmdsToSpecsCaptureAllocatesPipe(t *testing.T) {
	ctx := testContext()

	specs, err := CmdsToSpecs(ctx, []Token{Argv("ls")}, CaptureStdout)
	require.NoError(t, err)
	defer closeAll(specs)

	last := specs[0]
	assert.Equal(t, StreamHandle, last.Stdout().Kind)
	assert.NotNil(t, last.capturedStdout)
	assert.False(t, last.teeConsole)

	// Uncaptured stderr still goes through a console observer so it stays
	// visible while stdout is being captured.
	assert.NotNil(t, last.capturedStderr)
	assert.True(t, last.teeConsoleStderr)
}

func TestCmdsToSpecsPassthroughSkipsStderrConsole(t *testing.T) {
	ctx := testContext()
	var errOut bytes.Buffer
	ctx.Stderr = &errOut

	specs, err := CmdsToSpecs(ctx, []Token{Argv("ls")}, CaptureStdout)
	require.NoError(t, err)
	defer closeAll(specs)

	last := specs[0]
	assert.Nil(t, last.capturedStderr)
	assert.False(t, last.teeConsoleStderr)
}

func TestCmdsToSpecsObjectCaptureTakesBothStreams(t *testing.T) {
	ctx := testContext()

	specs, err := CmdsToSpecs(ctx, []Token{Argv("ls")}, CaptureObject)
	require.NoError(t, err)
	defer closeAll(specs)

	last := specs[0]
	assert.NotNil(t, last.capturedStdout)
	assert.NotNil(t, last.capturedStderr)
}

func TestCmdsToSpecsExplicitRedirectWinsOverCapture(t *testing.T) {
	ctx := testContext()

	specs, err := CmdsToSpecs(ctx, []Token{
		Argv("ls", ">", "out.txt"),
	}, CaptureStdout)
	require.NoError(t, err)
	defer closeAll(specs)

	assert.Nil(t, specs[0].capturedStdout)
}
