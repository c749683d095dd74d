package audio

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/himanishpuri/BeatLink/pkg/logger"
	"github.com/himanishpuri/BeatLink/pkg/utils"
)

const (
	DefaultTrimOffset  = 15 * time.Second
	DefaultTrimLength  = 30 * time.Second
	DefaultTrimTimeout = 60 * time.Second
)

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type CommandRunner struct{}

func NewCommandRunner() *CommandRunner {
	return &CommandRunner{}
}

func (r *CommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Trimmer cuts the fixed window handed to the fingerprint service out of a
// downloaded track, without re-encoding.
type Trimmer struct {
	runner  Runner
	ffmpeg  string
	offset  time.Duration
	length  time.Duration
	timeout time.Duration
	log     Logger
}

func NewTrimmer(runner Runner, ffmpegPath string, log Logger) *Trimmer {
	if runner == nil {
		runner = NewCommandRunner()
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if log == nil {
		log = logger.GetLogger().Named("audio")
	}
	return &Trimmer{
		runner:  runner,
		ffmpeg:  ffmpegPath,
		offset:  DefaultTrimOffset,
		length:  DefaultTrimLength,
		timeout: DefaultTrimTimeout,
		log:     log,
	}
}

// Args returns the ffmpeg arguments used to trim in into out.
func (t *Trimmer) Args(in, out string) []string {
	return []string{
		"-i", in,
		"-ss", seconds(t.offset),
		"-t", seconds(t.length),
		"-acodec", "copy",
		"-y",
		out,
	}
}

// Trim writes the trim window of in to out. out is removed if ffmpeg fails.
func (t *Trimmer) Trim(ctx context.Context, in, out string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	output, err := t.runner.Run(ctx, t.ffmpeg, t.Args(in, out)...)
	if err != nil {
		utils.RemoveIfExists(out)
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg: %w", ctx.Err())
		}
		t.log.Errorf("FFmpeg error: %s", tail(output, 500))
		return fmt.Errorf("ffmpeg failed: %w", err)
	}

	if !utils.FileExists(out) {
		return fmt.Errorf("trimmed file not found: %s", out)
	}
	return nil
}

func seconds(d time.Duration) string {
	return strconv.Itoa(int(d / time.Second))
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
