package layout

// BinpackHeights distributes totalHeight across the windows of a stack,
// preserving each window's current height where possible and giving the
// remainder to the trailing windows evenly. Uses a shrinking-prefix
// greedy fit: a prefix of `count` windows (starting at all of them) is
// tried at their own
// heights; the prefix's last member absorbs whatever space is left; if
// even that fails to respect minHeight for the remaining windows, count
// shrinks by one and the fit is retried. Once a prefix fits, the
// windows outside it share the leftover space evenly.
//
// Returns (nil, false) if no distribution respects minHeight — including
// the degenerate case where the retry loop shrinks count to zero, which
// would otherwise (as in the algorithm this is ported from) report a
// length-zero result for a non-empty input; that is treated as failure
// here so a true result always has len(result) == len(heights) and
// sum(result) == totalHeight.
func BinpackHeights(heights []int, minHeight, totalHeight int) ([]int, bool) {
	n := len(heights)
	if n == 0 {
		return nil, false
	}

	count := n
	var output []int

	for {
		output = output[:0]
		remaining := totalHeight
		idx := 0
		for idx < count {
			remainingWindows := n - idx
			if heights[idx] < remaining {
				if idx+1 == count {
					output = append(output, remaining)
				} else {
					output = append(output, heights[idx])
				}
				remaining -= heights[idx]
			} else if remaining >= minHeight*remainingWindows {
				output = append(output, remaining)
				remaining = 0
			} else {
				break
			}
			idx++
		}

		if idx == count {
			break
		}
		count--
		if count == 0 {
			return nil, false
		}
	}

	remaining := n - count
	if remaining > 0 {
		count--
		output = output[:count]
		sum := 0
		for _, h := range output {
			sum += h
		}
		avgHeight := float64(totalHeight-sum) / float64(remaining+1)
		avg := int(avgHeight)
		if avg < minHeight {
			return nil, false
		}
		for count < n {
			output = append(output, avg)
			count++
		}
		// The last window takes what integer division left over.
		output[n-1] += totalHeight - sum - avg*(remaining+1)
	}

	result := make([]int, len(output))
	copy(result, output)
	return result, true
}
