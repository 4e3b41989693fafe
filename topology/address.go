package topology

import (
	"net/netip"

	"github.com/sarchlab/wsnsim/config"
)

// allocateAddresses hands out n consecutive host addresses of the prefix,
// starting right after the network address. The broadcast address is never
// handed out.
func allocateAddresses(prefix netip.Prefix, n int) ([]netip.Addr, error) {
	prefix = prefix.Masked()

	hostBits := prefix.Addr().BitLen() - prefix.Bits()
	if hostBits < 2 {
		return nil, config.Errorf("address_base",
			"%s has no room for host addresses", prefix)
	}

	usable := uint64(1)<<uint(hostBits) - 2
	if uint64(n) > usable {
		return nil, config.Errorf("address_base",
			"%s has %d host addresses, %d nodes need one each",
			prefix, usable, n)
	}

	addrs := make([]netip.Addr, n)
	next := prefix.Addr()

	for i := range addrs {
		next = next.Next()
		addrs[i] = next
	}

	return addrs, nil
}
