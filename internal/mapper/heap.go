package mapper

import "github.com/partsched/partsched/internal/domain"

// cpuHeap is a min-heap of CPUs ordered by ascending workload, used by
// mapping to always pull the least-loaded CPU first. It satisfies
// container/heap.Interface.
type cpuHeap []*domain.CPU

func (h cpuHeap) Len() int { return len(h) }

func (h cpuHeap) Less(i, j int) bool {
	wi, wj := h[i].Workload(), h[j].Workload()
	if wi != wj {
		return wi < wj
	}
	return h[i].ID < h[j].ID
}

func (h cpuHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cpuHeap) Push(x any) {
	*h = append(*h, x.(*domain.CPU))
}

func (h *cpuHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
