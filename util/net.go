package util

import (
	"net"

	"github.com/cockroachdb/errors"
)

// GetLocalIP returns the first non-loopback IPv4 address of this host.
func GetLocalIP() (string, error) {
	list, err := net.Interfaces()
	if err != nil {
		return "", errors.Wrap(err, "list interfaces")
	}

	for _, iface := range list {
		addrs, err := iface.Addrs()
		if err != nil {
			return "", errors.Wrapf(err, "addresses of %s", iface.Name)
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			if !ip.IsLoopback() && ip.To4() != nil {
				return ip.String(), nil
			}
		}
	}
	return "", errors.New("no non-loopback IPv4 address")
}
