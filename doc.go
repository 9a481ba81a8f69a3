// Package gokern provides a teaching-grade cooperative process kernel.
//
// The kernel runs small user programs, each described by a loadable image,
// on a single logical processor and comes with pluggable service layers
// such as:
//
//   - processor – single-core dispatch and context switching
//   - scheduler – ready-queue policies (fifo, stride)
//   - memory    – per-task address spaces over a shared frame pool
//   - syscall   – typed syscall dispatch onto handler services
//
// The kernel is designed to be embedded in host applications.  End-users
// typically interact with it via the high-level Service façade exposed by
// the root package:
//
//	srv := gokern.New()
//	rt  := srv.Runtime()
//	t, _ := rt.Spawn(ctx, "programs/hello.prog")
//	_ = rt.Start(ctx)
//	code, _ := rt.WaitForTask(ctx, t, time.Minute)
//
// For more details see the README and individual sub-packages.
package gokern
