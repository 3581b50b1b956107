package monitor

import "io"

// outputTap relays shell output to the real terminal and mirrors it into the
// capture buffer. Returns when the PTY master reaches end-of-file or fails,
// which on Linux is how shell exit is observed (reads on a closed master
// report EIO rather than io.EOF).
func outputTap(master io.Reader, out *termWriter, buf *CaptureBuffer, done chan<- struct{}) {
	defer close(done)
	chunk := make([]byte, 16*1024)
	for {
		n, err := master.Read(chunk)
		if n > 0 {
			if _, werr := out.Write(chunk[:n]); werr != nil {
				return
			}
			buf.Append(chunk[:n])
		}
		if err != nil {
			return
		}
	}
}
