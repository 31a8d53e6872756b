// Package artifacts imports manually generated slide images back into the
// pipeline by scanning a run's prompt tree and matching image directories to
// sections through their positional index.
package artifacts
