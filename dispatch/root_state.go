package dispatch

// RootState is the HostRoot fiber's base/memoized state: the last
// element passed to update_container. It is an atomic value (whole-value
// replacement on UpdateState is correct), so it does not implement
// update.Merger, mirroring update/apply.go's "host root state is just
// {element}" example.
type RootState struct {
	Element Element
}
