// Command pollcat is a small demonstration of vfspoll.Multiplexer: it
// registers an in-process vol.Pipe in a file table, then blocks in Poll
// until the pipe becomes readable or a timeout expires, in the spirit of
// the teacher's echo-server test harness in watcher.go/aio_test.go but
// driven through the multiplexer core directly rather than a proactor
// loop.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lancs-net/vfspoll"
	"github.com/lancs-net/vfspoll/internal/filetable"
	"github.com/lancs-net/vfspoll/internal/logging"
	"github.com/lancs-net/vfspoll/internal/vol"
)

func main() {
	timeoutMS := flag.Int("timeout", 1000, "poll timeout in milliseconds (negative = forever, 0 = immediate)")
	message := flag.String("write", "", "if set, write this string into the pipe before polling")
	flag.Parse()

	log := logging.Default()

	ft := filetable.New()
	pipe := vol.NewPipe(4096)
	const pipeFd = 0
	if err := ft.Insert(pipeFd, pipe); err != nil {
		log.Error("insert pipe into file table", "err", err)
		os.Exit(1)
	}

	if *message != "" {
		if _, err := pipe.Write([]byte(*message)); err != nil {
			log.Error("write to pipe", "err", err)
			os.Exit(1)
		}
	}

	mux := vfspoll.New(ft)
	fds := []vfspoll.FdRequest{{Fd: pipeFd, Interest: vfspoll.Read}}

	start := time.Now()
	n, err := mux.Poll(fds, *timeoutMS)
	elapsed := time.Since(start)
	if err != nil {
		log.Error("poll", "err", err)
		os.Exit(1)
	}

	fmt.Printf("poll returned %d ready descriptor(s) after %s\n", n, elapsed)
	for _, req := range fds {
		fmt.Printf("  fd=%d interest=%s ready=%s\n", req.Fd, req.Interest, req.Ready)
	}

	if n > 0 && fds[0].Ready.Any(vfspoll.Read) {
		buf := make([]byte, 4096)
		nr, err := pipe.Read(buf)
		if err != nil && !errors.Is(err, vol.ErrWouldBlock) {
			log.Error("read from pipe", "err", err)
			os.Exit(1)
		}
		fmt.Printf("read %d byte(s): %q\n", nr, buf[:nr])
	}
}
