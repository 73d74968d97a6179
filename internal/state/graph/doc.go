/*
Package graph translates a resource snapshot (Knative and Kubernetes resources) into the
node/edge model rendered by the console topology view, for which:
- Ownership chains are resolved. For example, a Knative service node carries one child node
per revision its configurations own and route traffic to.
- Declarative relationships become typed edges. Traffic splits, event-source sinks, trigger
bindings and subscription bindings each produce an edge between the resources they connect.
- Logical applications are collected. Nodes sharing a part-of label are merged into groups.

The graph is rebuilt whole from the snapshot on every call and never maintained
incrementally; building twice from the same snapshot produces the same graph.

The package includes the types handed to the rendering layer and the functions to convert a
snapshot into them.
*/
package graph
