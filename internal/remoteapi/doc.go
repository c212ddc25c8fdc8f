// Package remoteapi implements a balancer backend driven through the
// administrative API of a load-balancer control plane. Pool names are
// transparently prefixed before any remote call, pools are created lazily on
// the first add that misses, and node removal drains connections first:
// disable, wait out the grace period, then remove.
package remoteapi
