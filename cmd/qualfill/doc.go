// Command qualfill resolves item quality from configured assumptions, filters
// the result, and manages the persistent item queue.
package main
