// Package sjoin contains the core types of a distributed inner equi-join, executed by a fixed set
// of ranks which communicate only through collective operations. This root package defines the
// relation chunks a rank holds, the Comm value identifying a rank, and the Transport contract on
// which every collective is built. Implementations live in the join, collective, local and
// cluster packages.
package sjoin
