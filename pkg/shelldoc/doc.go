// Package shelldoc defines the document model extracted from shell script
// documentation comments, the Parser contract that produces it, and the
// rendering filters templates use to present it. The concrete parser lives
// under internal/shelldoc and is exposed through the top-level shell package.
package shelldoc
