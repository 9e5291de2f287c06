// 22 Mar 2024
/*

sseannot labels the secondary structure elements (SSEs) of a protein
using an annotated template. The template has helices and strands with
names like "A" or "1a", the sheets they belong to and the ladders
between strands. The query has SSEs found by some detection program,
with no meaningful labels. We match them and write the query's SSEs
with the template labels.

Usage:
 sseannot [options] template.json query.json

Flags:
  -s strategy
	dp	dynamic programming. Keeps sequence order, ignores ladders.
	bb	branch and bound. Keeps order and the template's ladders.
	mom	maximum weight clique on the product graph. Strands need not
		be in the same order.
	combined
		dp, but then ladders the template has and the query lost
		are thrown out.
  -n	Soft matching. A template strand may be matched to a run of
	query strands, so broken strands are put back together.
  -g N
	When joining strands in soft matching, the largest gap allowed.
  -f secs
	With mom, if there is no answer after this many seconds, give up
	and use dp. Zero means wait forever.
  -k K0[,K1,K2]
	Largest metric for a pair to be considered a match. The limit is
	K0 + K1*len(template) + K2*len(query). Default 30,0,0.
  -l	Add the difference in lengths to the metric.
  -N	Offer joined templates from the template's sse_merging list. Only
	for bb and combined.
  -C file
	Tab separated corrections: pdb label chain start end. A start and
	end of 0 means the SSE is not there. Lines for other structures
	are ignored. Lines starting with # are comments.
  -a	Work out query sheet IDs from the ladders.
  -K	Do not rename query sheets to match the template.
  -t id, -i id
	Entry to use from the template and query files. The default is the
	first entry.
  -d dir
	Write score matrices (csv) and pictures (png) to dir.
  -o filename
	Write output to filename. By default, standard output.
  -v	Verbose
  -q	Do not print warnings.

Output has the same JSON format as the input. SSEs that were not found
are left out. Each SSE carries its metric_value and suspiciousness. The
suspiciousness compares the annotated metric with the best alternative.
Values near or above 1 mean the label could as well have gone
somewhere else.

*/
package main
