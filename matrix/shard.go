package matrix

// ShardOf returns the shard holding column col when columns are dealt out
// round robin over n shards.
func ShardOf(col, n int) int {
	if n <= 1 {
		return 0
	}
	return col % n
}

// ShardColumns lists, in ascending order, the columns of an ncol-wide matrix
// that belong to shard.
func ShardColumns(ncol, n, shard int) []int {
	if n <= 1 {
		n, shard = 1, 0
	}
	if shard < 0 || shard >= n {
		return nil
	}
	cols := make([]int, 0, ncol/n+1)
	for c := shard; c < ncol; c += n {
		cols = append(cols, c)
	}
	return cols
}
