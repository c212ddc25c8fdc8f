// Package configfile implements a balancer backend that keeps pool
// membership in plain config files on a set of remote hosts. Every mutation
// is written to all hosts over SSH/SFTP and followed by a privileged config
// reload on each host. Reads tolerate per-host divergence by returning the
// union of what the hosts report.
package configfile
