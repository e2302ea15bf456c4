package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:     SnapshotVersion,
		Tick:        300,
		ArenaWidth:  800,
		ArenaHeight: 600,
		GroundY:     5,
		Ragdolls: []RagdollState{
			{
				Index:   0,
				Fitness: -41234.5,
				Score:   -212.25,
				Joints: []JointState{
					{Name: "hip", X: 401.5, Y: 120.25, VelX: 0.5, VelY: -0.25},
					{Name: "head", X: 390, Y: 31},
				},
			},
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if filepath.Base(path) != "snapshot_300.json" {
		t.Errorf("snapshot saved as %s, want snapshot_300.json", filepath.Base(path))
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Tick != snapshot.Tick {
		t.Errorf("Tick mismatch: got %d, want %d", loaded.Tick, snapshot.Tick)
	}
	if loaded.GroundY != 5 {
		t.Errorf("GroundY = %v, want 5", loaded.GroundY)
	}
	if len(loaded.Ragdolls) != 1 {
		t.Fatalf("Ragdolls count mismatch: got %d, want 1", len(loaded.Ragdolls))
	}

	r := loaded.Ragdolls[0]
	if r.Fitness != -41234.5 || r.Score != -212.25 {
		t.Errorf("fitness/score = %v/%v, want -41234.5/-212.25", r.Fitness, r.Score)
	}
	if len(r.Joints) != 2 || r.Joints[0] != snapshot.Ragdolls[0].Joints[0] {
		t.Errorf("joints = %+v, want %+v", r.Joints, snapshot.Ragdolls[0].Joints)
	}
}

func TestLoadSnapshotRejectsVersion(t *testing.T) {
	path, err := SaveSnapshot(&Snapshot{Version: SnapshotVersion + 1, Tick: 1}, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for unknown snapshot version")
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
