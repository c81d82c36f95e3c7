package domain_test

import (
	"testing"

	"github.com/fogsched/epoceis/internal/domain"
)

func TestNewNodeSetRejectsDuplicateID(t *testing.T) {
	_, err := domain.NewNodeSet([]domain.Node{{ID: 1}, {ID: 1}})
	if err == nil {
		t.Fatal("expected error for duplicate node id")
	}
}

func TestNodeSetFogAndCloudSplit(t *testing.T) {
	nodes := []domain.Node{
		{ID: 0, IsCloud: false},
		{ID: 1, IsCloud: true},
		{ID: 2, IsCloud: false},
	}
	ns, err := domain.NewNodeSet(nodes)
	if err != nil {
		t.Fatalf("NewNodeSet: %v", err)
	}
	fog := ns.FogIDs()
	if len(fog) != 2 || fog[0] != 0 || fog[1] != 2 {
		t.Errorf("FogIDs = %v, want [0 2]", fog)
	}
	cloud := ns.CloudIDs()
	if len(cloud) != 1 || cloud[0] != 1 {
		t.Errorf("CloudIDs = %v, want [1]", cloud)
	}
	if ns.Len() != 3 {
		t.Errorf("Len = %d, want 3", ns.Len())
	}
}

func TestNodeSetSubsetPreservesOrderAndFiltering(t *testing.T) {
	nodes := []domain.Node{{ID: 5}, {ID: 2}, {ID: 9}}
	ns, err := domain.NewNodeSet(nodes)
	if err != nil {
		t.Fatalf("NewNodeSet: %v", err)
	}
	sub := ns.Subset([]int{9, 5})
	ids := sub.IDs()
	if len(ids) != 2 || ids[0] != 5 || ids[1] != 9 {
		t.Errorf("Subset IDs = %v, want [5 9] (insertion order preserved)", ids)
	}
	if _, ok := sub.Get(2); ok {
		t.Error("Subset should not contain excluded node 2")
	}
}

func TestNodeSetGetMissing(t *testing.T) {
	ns, err := domain.NewNodeSet([]domain.Node{{ID: 0}})
	if err != nil {
		t.Fatalf("NewNodeSet: %v", err)
	}
	if _, ok := ns.Get(42); ok {
		t.Error("Get(42) should report not-found on empty-of-42 set")
	}
}
