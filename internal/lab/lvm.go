package lab

func init() {
	Register(Exercise{
		Name:  "lvm-basics",
		Title: "LVM: physical volumes, volume groups, logical volumes",
		Description: "Build the LVM stack bottom-up on two disks, grow a logical volume\n" +
			"online, then dismantle everything.",
		Steps: []Step{
			{
				Title:   "Initialize physical volumes",
				Command: "sudo pvcreate /dev/vdc /dev/vdd && sudo pvs",
				Probes: []TextProbe{
					Probe("both PVs created", `(?s)/dev/vdc.*/dev/vdd|/dev/vdd.*/dev/vdc`),
				},
			},
			{
				Title:   "Create a volume group",
				Command: "sudo vgcreate vglab /dev/vdc /dev/vdd && sudo vgs vglab",
				Probes: []TextProbe{
					Probe("volume group created", `Volume group "vglab" successfully created`),
					Probe("VG spans two PVs", `vglab\s+2`),
				},
			},
			{
				Title:   "Carve out a logical volume",
				Command: "sudo lvcreate -L 512M -n lvdata vglab && sudo lvs vglab",
				Probes: []TextProbe{
					Probe("logical volume created", `Logical volume "lvdata" created`),
				},
			},
			{
				Title:   "Filesystem and mount",
				Command: "sudo mkfs.ext4 -q /dev/vglab/lvdata && sudo mkdir -p /mnt/lvm && sudo mount /dev/vglab/lvdata /mnt/lvm && df -h /mnt/lvm",
				Probes: []TextProbe{
					Probe("volume mounted", `/mnt/lvm`),
				},
			},
			{
				Title:   "Grow the volume online",
				Command: "sudo lvextend -L +256M -r /dev/vglab/lvdata && df -h /mnt/lvm",
				Probes: []TextProbe{
					Probe("volume resized", `Size of logical volume vglab/lvdata changed`),
					Probe("filesystem grew with it", `768M|767M|7[0-6][0-9]M`),
				},
			},
			{
				Title:   "Tear down",
				Command: "sudo umount /mnt/lvm && sudo lvremove -y vglab && sudo vgremove vglab && sudo pvremove /dev/vdc /dev/vdd && echo lvm-cleanup-done",
				Probes: []TextProbe{
					Probe("cleanup finished", `lvm-cleanup-done`),
				},
			},
		},
	})

	Register(Exercise{
		Name:  "lvm-snapshots",
		Title: "LVM: snapshots and rollback",
		Description: "Snapshot a live volume, damage the original, then merge the\n" +
			"snapshot back to undo the damage.",
		Steps: []Step{
			{
				Title:   "Build a volume with known content",
				Command: "sudo pvcreate /dev/vdc && sudo vgcreate vgsnap /dev/vdc && sudo lvcreate -L 256M -n lvorig vgsnap && sudo mkfs.ext4 -q /dev/vgsnap/lvorig && sudo mkdir -p /mnt/snap && sudo mount /dev/vgsnap/lvorig /mnt/snap && echo important-data | sudo tee /mnt/snap/keep",
				Probes: []TextProbe{
					Probe("baseline data written", `important-data`),
				},
			},
			{
				Title:   "Take a snapshot",
				Command: "sudo lvcreate -s -L 128M -n lvsnap /dev/vgsnap/lvorig && sudo lvs vgsnap",
				Probes: []TextProbe{
					Probe("snapshot created", `Logical volume "lvsnap" created`),
				},
			},
			{
				Title:   "Damage the original",
				Command: "sudo rm /mnt/snap/keep && ls /mnt/snap",
				Probes: []TextProbe{
					Probe("file is gone", `lost\+found`),
				},
			},
			{
				Title:   "Merge the snapshot back",
				Command: "sudo umount /mnt/snap && sudo lvconvert --merge /dev/vgsnap/lvsnap && sudo lvchange -an vgsnap/lvorig && sudo lvchange -ay vgsnap/lvorig && sudo mount /dev/vgsnap/lvorig /mnt/snap && cat /mnt/snap/keep",
				Probes: []TextProbe{
					Probe("data restored from snapshot", `important-data`),
				},
			},
			{
				Title:   "Tear down",
				Command: "sudo umount /mnt/snap && sudo lvremove -y vgsnap && sudo vgremove vgsnap && sudo pvremove /dev/vdc && echo snap-cleanup-done",
				Probes: []TextProbe{
					Probe("cleanup finished", `snap-cleanup-done`),
				},
			},
		},
	})
}
