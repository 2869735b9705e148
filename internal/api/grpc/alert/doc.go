// Package alert exposes the current alert reading over gRPC.
//
// The service is described by hand with well-known protobuf types:
// GetAlertState takes google.protobuf.Empty and answers with a
// google.protobuf.Struct. Server maps the view-model snapshot onto the
// Struct, Client maps it back, and Listener hosts the gRPC server as a
// hosted service.
package alert
