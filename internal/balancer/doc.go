// Package balancer defines the capability every load-balancer backend
// implements: adding and removing host:port nodes in named pools, reading
// pool membership, and deleting pools. It also provides the shared node-set
// type, the pool-not-found error variant, and the registry that maps backend
// kind tags to constructors.
package balancer
