// Package worker manages the isolated execution context for outline
// generation. The host side (Process) spawns the squircle-worker binary and
// exchanges framed protocol messages over its stdio pipes; the worker side
// (Agent) runs inside that binary, serving generation requests one frame at
// a time. Host and worker share no memory and communicate only by
// message passing.
package worker
