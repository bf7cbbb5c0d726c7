package minicluster

import (
	"io"
	"net"
	"strconv"
	"strings"
)

// ZooKeeper four-letter liveness exchange. Fixed by the wire protocol.
const (
	zkLivenessCommand = "ruok"
	zkLivenessReply   = "imok"
)

// ZooKeeperReady reports whether the ZooKeeper server listening on the given
// port on the configured host answers the ruok liveness command with imok.
// Single attempt with the OS network defaults; callers loop if they want
// repeated probing.
func (c *Cluster) ZooKeeperReady(port int) bool {
	return ZooKeeperReady(c.opts.Host, port)
}

// ZooKeeperReady is the cluster-free form of the probe, for callers that
// have nothing but a host and a port.
func ZooKeeperReady(host string, port int) bool {
	return zooKeeperReady(net.JoinHostPort(host, strconv.Itoa(port)))
}

func zooKeeperReady(addr string) bool {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return false
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(zkLivenessCommand)); err != nil {
		return false
	}
	// ZooKeeper closes the connection after answering a four-letter word,
	// so reading to EOF yields exactly the reply.
	reply, err := io.ReadAll(conn)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(reply)) == zkLivenessReply
}
