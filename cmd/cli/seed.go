package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"ewah/ewah"
	"ewah/internal/common"
)

// cmdSeed replaces a bitmap with random bits. Bits come in clustered runs
// so the result mixes empty runs with literal words.
func cmdSeed(s *session, args []string) error {
	size, err := parseUint(args[2])
	if err != nil {
		return err
	}
	density, err := strconv.ParseFloat(args[3], 64)
	if err != nil || density < 0 || density > 1 {
		return fmt.Errorf("density must be in [0, 1]")
	}

	start := time.Now()
	b := seedBitmap(s.rnd, size, density)
	s.bitmaps[args[1]] = b
	common.LogDuration(start, "seeded %s with %d of %d bits", args[1], b.Cardinality(), size)
	return nil
}

func seedBitmap(rnd *rand.Rand, size uint64, density float64) *ewah.Bitmap {
	b := ewah.New()
	const cluster = 4096
	for base := uint64(0); base < size; base += cluster {
		// Local density swings around the target so some clusters empty out
		// and some fill up.
		local := min(1, max(0, density*2*rnd.Float64()))
		for p := base; p < min(base+cluster, size); p++ {
			if rnd.Float64() < local {
				b.Set(p)
			}
		}
	}
	b.SetSizeInBits(size)
	return b
}
