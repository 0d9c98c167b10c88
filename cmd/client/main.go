// Command client is a thin interactive client for the reservation
// server.  It relays each stdin line as one command frame, prints the
// response, and prints notices that arrive over UDP on the local TCP
// port plus one.
package main

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/iliyamo/airline-reservation/internal/server"
)

func main() {
	offset := pflag.Int("notify-offset", 1, "notice port relative to the local TCP port")
	maxFrame := pflag.Int("max-frame", server.DefaultMaxFrameBytes, "largest response read in one go")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <host> <port>\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if pflag.NArg() != 2 {
		pflag.Usage()
		os.Exit(2)
	}

	conn, err := net.Dial("tcp", net.JoinHostPort(pflag.Arg(0), pflag.Arg(1)))
	if err != nil {
		log.Fatalf("client: %v", err)
	}
	defer conn.Close()

	local := server.PeerAddr(conn.LocalAddr())
	go listenNotices(int(local.Port())+*offset, *maxFrame)

	in := bufio.NewScanner(os.Stdin)
	buf := make([]byte, *maxFrame)
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if _, err := conn.Write([]byte(line)); err != nil {
			log.Fatalf("client: send: %v", err)
		}
		n, err := conn.Read(buf)
		if n > 0 {
			fmt.Println(string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}

// listenNotices prints every datagram received on port.
func listenNotices(port, maxFrame int) {
	pc, err := net.ListenPacket("udp", fmt.Sprintf(":%d", port))
	if err != nil {
		log.Printf("client: notices unavailable: %v", err)
		return
	}
	defer pc.Close()
	buf := make([]byte, maxFrame)
	for {
		n, _, err := pc.ReadFrom(buf)
		if err != nil {
			return
		}
		fmt.Println(string(buf[:n]))
	}
}
