// Package update decides which tag an installation should move to and how
// to get the working tree onto it.
//
// This package handles:
//   - Reconciling the remote and local tag listings into one working set
//   - Filtering candidates by release channel
//   - Picking the latest version under the package version ordering
//   - Running the ordered checkout fallbacks until one succeeds
//
// Nothing here talks to git directly. Tag listings come in as strings and
// checkout steps go through the Checkouter interface, so callers can supply
// fakes in tests.
//
// Example usage:
//
//	latest, err := update.Resolve(domain.ChannelRelease, remoteTags, localTags)
//	if err != nil {
//	    // no usable tags for this channel
//	}
//	name, err := update.RunCascade(ctx, update.CheckoutStrategies(repo, latest.Raw))
package update
