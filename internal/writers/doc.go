// Package writers turns the final graph into files in the working directory.
//
// Design:
//   - Each artifact is a named writer registered from its format's package.
//   - Writers only read the graph; they run concurrently once mutation is over.
//   - Files are written under a temporary name and renamed when complete.
package writers
