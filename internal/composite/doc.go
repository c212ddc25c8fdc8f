// Package composite implements a balancer that fans every operation out to
// an ordered list of child backends. Mutations are applied to all children
// with no rollback; reads merge every child's view into one sorted set.
package composite
