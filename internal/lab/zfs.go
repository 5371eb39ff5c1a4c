package lab

import "time"

func init() {
	Register(Exercise{
		Name:  "zfs-pools",
		Title: "ZFS: mirrored pool, datasets and self-healing",
		Description: "Create a mirrored zpool, carve datasets with properties, degrade\n" +
			"the mirror and resilver it.",
		Steps: []Step{
			{
				Title:   "Create a mirrored pool",
				Command: "sudo zpool create labpool mirror /dev/vdc /dev/vdd && sudo zpool status labpool",
				Probes: []TextProbe{
					Probe("pool online", `state: ONLINE`),
					Probe("mirror vdev present", `mirror-0`),
				},
			},
			{
				Title:   "Create a dataset with compression",
				Command: "sudo zfs create -o compression=lz4 labpool/data && sudo zfs get compression labpool/data",
				Probes: []TextProbe{
					Probe("compression enabled", `compression\s+lz4`),
				},
			},
			{
				Title:   "Write through the dataset",
				Command: "echo zfs-proof | sudo tee /labpool/data/proof && sudo zpool list labpool",
				Probes: []TextProbe{
					Probe("pool accounting updated", `labpool`),
				},
			},
			{
				Title:   "Degrade the mirror",
				Command: "sudo zpool offline labpool /dev/vdc && sudo zpool status labpool && cat /labpool/data/proof",
				Probes: []TextProbe{
					Probe("pool degraded", `state: DEGRADED`),
					Probe("data still readable", `zfs-proof`),
				},
			},
			{
				Title:   "Bring the disk back and resilver",
				Command: "sudo zpool online labpool /dev/vdc",
				Poll: &Poll{
					Command:  "sudo zpool status labpool",
					Probe:    Probe("mirror resilvered and online", `state: ONLINE`),
					Interval: 2 * time.Second,
					Timeout:  120 * time.Second,
				},
			},
			{
				Title:   "Tear down",
				Command: "sudo zpool destroy labpool && echo zfs-cleanup-done",
				Probes: []TextProbe{
					Probe("cleanup finished", `zfs-cleanup-done`),
				},
			},
		},
	})

	Register(Exercise{
		Name:  "zfs-snapshots",
		Title: "ZFS: snapshots, rollback and clones",
		Description: "Snapshot a dataset, destroy its contents, roll back, then clone\n" +
			"the snapshot into a writable dataset.",
		Steps: []Step{
			{
				Title:   "Pool and baseline data",
				Command: "sudo zpool create snappool /dev/vdc && sudo zfs create snappool/data && echo precious | sudo tee /snappool/data/file && cat /snappool/data/file",
				Probes: []TextProbe{
					Probe("baseline data written", `precious`),
				},
			},
			{
				Title:   "Take a snapshot",
				Command: "sudo zfs snapshot snappool/data@before && sudo zfs list -t snapshot",
				Probes: []TextProbe{
					Probe("snapshot listed", `snappool/data@before`),
				},
			},
			{
				Title:   "Destroy the data",
				Command: "sudo rm /snappool/data/file && ls /snappool/data | wc -l",
				Probes: []TextProbe{
					Probe("dataset emptied", `^0`),
				},
			},
			{
				Title:   "Roll back",
				Command: "sudo zfs rollback snappool/data@before && cat /snappool/data/file",
				Probes: []TextProbe{
					Probe("data restored", `precious`),
				},
			},
			{
				Title:   "Clone the snapshot",
				Command: "sudo zfs clone snappool/data@before snappool/experiment && cat /snappool/experiment/file",
				Probes: []TextProbe{
					Probe("clone holds the data", `precious`),
				},
			},
			{
				Title:   "Tear down",
				Command: "sudo zpool destroy snappool && echo zfs-snap-cleanup-done",
				Probes: []TextProbe{
					Probe("cleanup finished", `zfs-snap-cleanup-done`),
				},
			},
		},
	})
}
