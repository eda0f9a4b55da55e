package network

// SamplePartition is the module partition of the built-in example network.
var SamplePartition = Partition{
	{Name: "ingest", From: 1, To: 10},
	{Name: "compute", From: 11, To: 20},
	{Name: "serve", From: 21, To: 30},
}

// sampleEdges is a small three-module system: a densely linked ring, a hub
// with spokes and a branching chain, joined by a few bridges.
var sampleEdges = [][2]string{
	// ingest: ring with two chords
	{"1", "2"}, {"2", "3"}, {"3", "4"}, {"4", "5"}, {"5", "6"},
	{"6", "7"}, {"7", "8"}, {"8", "9"}, {"9", "10"}, {"10", "1"},
	{"1", "6"}, {"3", "8"},
	// compute: hub and spokes
	{"11", "12"}, {"11", "13"}, {"11", "14"}, {"11", "15"}, {"11", "16"},
	{"11", "17"}, {"11", "18"}, {"11", "19"}, {"11", "20"}, {"19", "20"},
	// serve: branching chain
	{"21", "22"}, {"22", "23"}, {"22", "24"}, {"24", "25"}, {"24", "26"},
	{"26", "27"}, {"27", "28"}, {"27", "29"}, {"29", "30"},
	// bridges
	{"5", "11"}, {"10", "12"}, {"16", "21"}, {"18", "25"},
}

// SampleEdges returns the edge records of the built-in example network.
func SampleEdges() []EdgeRecord {
	out := make([]EdgeRecord, len(sampleEdges))
	for i, e := range sampleEdges {
		out[i] = EdgeRecord{From: e[0], To: e[1]}
	}
	return out
}

// Sample builds the built-in example network with [SamplePartition].
func Sample() *Network {
	net, err := Build(SampleEdges(), nil, BuildOptions{Partition: SamplePartition})
	if err != nil {
		panic("network: invalid sample: " + err.Error())
	}
	return net
}
