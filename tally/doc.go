// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally turns an election's vote log into results.

Every vote falls in exactly one bucket:

  - a candidate of the election
  - blank
  - null
  - a write-in name, grouped by WriteInKey
  - orphaned, when the vote names a candidate that is no longer listed

so the bucket counts always add up to TotalVotes. Percentages are relative
to TotalVotes and rounded to two decimals.

Candidates are ordered by votes, descending; ties keep the candidate list
order and share a rank. Write-ins are ordered the same way, ties in the order
the name first appeared.

Participation is the per-voter report of which active elections each
student has voted in.
*/
package tally
