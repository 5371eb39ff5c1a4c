package lab

import "time"

// RAID exercises use the first data disks (/dev/vdc onward; vda is the system
// disk and vdb the seed). Every exercise tears its array down at the end so
// the disks are reusable by the next one.

func init() {
	Register(Exercise{
		Name:  "raid1",
		Title: "RAID 1: mirrored array, failure and recovery",
		Description: "Create a two-disk mirror, put a filesystem on it, simulate a disk\n" +
			"failure, then replace the disk and watch the array resync.",
		Steps: []Step{
			{
				Title:   "Create a two-disk RAID 1 array",
				Command: "sudo mdadm --create /dev/md0 --level=1 --raid-devices=2 /dev/vdc /dev/vdd --run",
				Probes: []TextProbe{
					Probe("array started", `mdadm: array /dev/md0 started`),
				},
			},
			{
				Title:   "Inspect the array",
				Command: "cat /proc/mdstat && sudo mdadm --detail /dev/md0",
				Probes: []TextProbe{
					Probe("md0 active as raid1", `md0 : active raid1`),
					Probe("both members in sync", `\[2/2\] \[UU\]`),
				},
			},
			{
				Title:   "Create a filesystem and write data",
				Command: "sudo mkfs.ext4 -q /dev/md0 && sudo mkdir -p /mnt/raid1 && sudo mount /dev/md0 /mnt/raid1 && echo hello-raid | sudo tee /mnt/raid1/proof && cat /mnt/raid1/proof",
				Probes: []TextProbe{
					Probe("data readable from the array", `hello-raid`),
				},
			},
			{
				Title:   "Fail one member disk",
				Command: "sudo mdadm /dev/md0 --fail /dev/vdd && sudo mdadm --detail /dev/md0",
				Probes: []TextProbe{
					Probe("member marked faulty", `faulty\s+/dev/vdd`),
					Probe("array degraded but running", `\[2/1\] \[U_\]|State :.*degraded`),
				},
			},
			{
				Title:   "Replace the failed disk and resync",
				Command: "sudo mdadm /dev/md0 --remove /dev/vdd && sudo mdadm /dev/md0 --add /dev/vdd",
				Probes: []TextProbe{
					Probe("replacement disk added", `mdadm: added /dev/vdd`),
				},
				Poll: &Poll{
					Command:  "cat /proc/mdstat",
					Probe:    Probe("mirror fully resynced", `\[2/2\] \[UU\]`),
					Interval: 2 * time.Second,
					Timeout:  120 * time.Second,
				},
			},
			{
				Title:   "Tear down",
				Command: "sudo umount /mnt/raid1 && sudo mdadm --stop /dev/md0 && sudo mdadm --zero-superblock /dev/vdc /dev/vdd && echo raid1-cleanup-done",
				Probes: []TextProbe{
					Probe("cleanup finished", `raid1-cleanup-done`),
				},
			},
		},
	})

	Register(Exercise{
		Name:  "raid5",
		Title: "RAID 5: striped parity with a hot spare",
		Description: "Create a three-disk RAID 5 array with a hot spare, fail a member\n" +
			"and watch the spare take over.",
		Steps: []Step{
			{
				Title:   "Create a RAID 5 array with a spare",
				Command: "sudo mdadm --create /dev/md0 --level=5 --raid-devices=3 /dev/vdc /dev/vdd /dev/vde --spare-devices=1 /dev/vdf --run",
				Probes: []TextProbe{
					Probe("array started", `mdadm: array /dev/md0 started`),
				},
			},
			{
				Title:   "Wait for the initial sync",
				Command: "echo checking",
				Poll: &Poll{
					Command:  "cat /proc/mdstat",
					Probe:    Probe("all members active", `\[3/3\] \[UUU\]`),
					Interval: 2 * time.Second,
					Timeout:  180 * time.Second,
				},
			},
			{
				Title:   "Inspect layout and spare",
				Command: "sudo mdadm --detail /dev/md0",
				Probes: []TextProbe{
					Probe("raid5 level reported", `Raid Level : raid5`),
					Probe("hot spare attached", `spare\s+/dev/vdf`),
				},
			},
			{
				Title:   "Fail a member, spare takes over",
				Command: "sudo mdadm /dev/md0 --fail /dev/vdd && cat /proc/mdstat",
				Probes: []TextProbe{
					Probe("failed member flagged", `vdd\[\d+\]\(F\)`),
				},
				Poll: &Poll{
					Command:  "cat /proc/mdstat",
					Probe:    Probe("array rebuilt onto the spare", `\[3/3\] \[UUU\]`),
					Interval: 2 * time.Second,
					Timeout:  180 * time.Second,
				},
			},
			{
				Title:   "Tear down",
				Command: "sudo mdadm --stop /dev/md0 && sudo mdadm --zero-superblock /dev/vdc /dev/vdd /dev/vde /dev/vdf && echo raid5-cleanup-done",
				Probes: []TextProbe{
					Probe("cleanup finished", `raid5-cleanup-done`),
				},
			},
		},
	})
}
