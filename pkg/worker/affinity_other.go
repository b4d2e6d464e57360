//go:build !linux

package worker

import (
	"fmt"

	"github.com/jzx17/stealpool/pkg/types"
)

func pinCurrentThread(workerID int) error {
	return fmt.Errorf("pin worker %d: %w", workerID, types.ErrAffinityUnsupported)
}
