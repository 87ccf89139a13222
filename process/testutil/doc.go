// Package testutil provides a scriptable in-memory process.Host.
//
// RecordingHost records every boundary call in order and answers Run with a
// scripted result, so code built on process.Invoker can be tested without a
// module runtime or real processes:
//
//	host := testutil.NewRecordingHost().SetResult(0, []byte("hi\n"), nil)
//	inv := process.NewInvoker(host)
//	out, err := inv.Execute(ctx, process.New("echo").Arg("hi"))
//	// host.Steps() lists the calls, host.LastRequest() what was sent.
package testutil
