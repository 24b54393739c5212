package commands

import (
	"errors"
	"io"

	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/juju/ratelimit"
)

// Throttle copies standard input to standard output at a fixed rate.
func Throttle(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "throttle -r BYTES [-b BYTES]",
		Short: "Copy standard input to standard output at most BYTES per second.",
	}

	rate := cmd.Flags().Int64Long("rate", 'r', 0, "bytes per second")
	burst := cmd.Flags().Int64Long("burst", 'b', 0, "bytes that may be copied at once, defaults to the rate")

	return cmd.RunE(virtOS, func() error {
		if *rate <= 0 {
			return errors.New("rate must be positive")
		}
		capacity := *burst
		if capacity <= 0 {
			capacity = *rate
		}

		tokenBucket := ratelimit.NewBucketWithRate(float64(*rate), capacity)
		_, err := io.Copy(virtOS.Stdout(), ratelimit.Reader(virtOS.Stdin(), tokenBucket))
		return err
	})
}

var _ vos.ProcessFunc = Throttle

func init() {
	mustAddBinCmd("throttle", Throttle)
}
