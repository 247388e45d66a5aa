package types

// Version is the seqpipe release version
const Version = "0.1.0"
