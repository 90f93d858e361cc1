package rclone

import (
	"bufio"
	"os"
)

// DefaultTailLines is how many log lines the log view shows.
const DefaultTailLines = 50

// TailLog returns the last n lines of the file at path.
func TailLog(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if n <= 0 {
		n = DefaultTailLines
	}
	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(ring) == n {
			ring = append(ring[1:], scanner.Text())
			continue
		}
		ring = append(ring, scanner.Text())
	}
	return ring, scanner.Err()
}
