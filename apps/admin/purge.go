package main

import (
	"fmt"
	"time"

	"github.com/kwanjiru/eduid/core/student"
)

// purge removes rejected submissions reviewed more than `days` days ago.
func (cli *commandLine) purge(days int) error {
	cutoff := student.NowFunc().Add(-time.Duration(days) * 24 * time.Hour)
	n, err := cli.stRepo.DeleteRejectedBefore(cutoff)
	if err != nil {
		return err
	}
	fmt.Printf("purged %d rejected submission(s)\n", n)
	return nil
}
