package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/repository"
	"indrhi-inventory/pkg/lock"

	"gorm.io/gorm"
)

const numberingLockTTL = 15 * time.Second

func requestPrefix(departmentID uint, year int) string {
	return fmt.Sprintf("SD%d-%d-", departmentID, year)
}

func receiptPrefix(year int) string {
	return fmt.Sprintf("INDRHI-EM-%d-", year)
}

func orderPrefix(purchaseType model.PurchaseType, year int) string {
	return fmt.Sprintf("INDRHI-DAF-%s-%d-", purchaseType, year)
}

// maxSequence returns the highest numeric suffix after prefix, 0 when none parse
func maxSequence(numbers []string, prefix string) int {
	highest := 0
	for _, n := range numbers {
		seq, err := strconv.Atoi(strings.TrimPrefix(n, prefix))
		if err != nil {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return highest
}

// nextNumber must run inside the transaction that inserts the number, under the prefix lock
func nextNumber(tx *gorm.DB, table interface{}, column, prefix string) (string, error) {
	numbers, err := repository.NumbersWithPrefix(tx, table, column, prefix)
	if err != nil {
		return "", storageErr(err, "read "+column)
	}
	return fmt.Sprintf("%s%04d", prefix, maxSequence(numbers, prefix)+1), nil
}

// numbering serializes number allocation per prefix
type numbering struct {
	locker lock.Locker
}

// withPrefixes holds the lock of every prefix, in the given order, while fn runs
func (n numbering) withPrefixes(ctx context.Context, prefixes []string, fn func() error) error {
	held := make([]lock.Lock, 0, len(prefixes))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			_ = held[i].Release(context.Background())
		}
	}()

	for _, p := range prefixes {
		lk, err := n.locker.Obtain(ctx, "numbering:"+p, numberingLockTTL)
		if err != nil {
			return fmt.Errorf("%w: numbering lock %s: %v", ErrUpstreamFailure, p, err)
		}
		held = append(held, lk)
	}
	return fn()
}
