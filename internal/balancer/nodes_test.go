package balancer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/balancer-pools/internal/balancer"
)

var _ = Describe("NodeSet", func() {
	It("should drop duplicates when built from a slice", func() {
		set := balancer.FromSlice([]string{"a:1", "b:2", "a:1"})
		Expect(set.Sorted()).To(Equal([]string{"a:1", "b:2"}))
	})

	It("should union without duplicating shared members", func() {
		left := balancer.FromSlice([]string{"a:1", "b:2"})
		right := balancer.FromSlice([]string{"b:2", "c:3"})

		Expect(left.Union(right).Sorted()).To(Equal([]string{"a:1", "b:2", "c:3"}))
	})

	It("should subtract only the given members", func() {
		set := balancer.FromSlice([]string{"a:1", "b:2", "c:3"})
		gone := balancer.FromSlice([]string{"b:2", "x:9"})

		Expect(set.Diff(gone).Sorted()).To(Equal([]string{"a:1", "c:3"}))
	})

	It("should intersect to the common members", func() {
		left := balancer.FromSlice([]string{"a:1", "b:2"})
		right := balancer.FromSlice([]string{"b:2", "c:3"})

		Expect(left.Intersect(right).Sorted()).To(Equal([]string{"b:2"}))
	})

	It("should compare sets by membership", func() {
		Expect(balancer.FromSlice([]string{"a:1", "b:2"}).
			Equal(balancer.FromSlice([]string{"b:2", "a:1"}))).To(BeTrue())
		Expect(balancer.FromSlice([]string{"a:1"}).
			Equal(balancer.FromSlice([]string{"b:2"}))).To(BeFalse())
	})

	It("should return an empty, non-nil slice for an empty set", func() {
		Expect(balancer.NewNodeSet().Sorted()).To(BeEmpty())
		Expect(balancer.NewNodeSet().Sorted()).NotTo(BeNil())
	})
})
