/*
Package httpapi exposes the value table over HTTP.

Routes (the write route is configurable, default /api/SortArrayWriter):

	POST {route}          {"key": "k1", "ArrayOfValues": [95, 45]} -> 200 {"key":"k1","count":2}
	GET  {route}/{key}    -> 200 {"key":"k1","count":2,"values":[45,95]}
	GET  {route}          the same for rows written without a key
	GET  /health          -> 200 {"ok":true,...}

Body field names are case sensitive. The key is read as a string: absent or
null is empty, numbers and booleans keep their JSON text. A malformed write
request gets 400 with an empty body and nothing is written. Reading a key
without rows gets 404. With a function key configured, API routes answer
401 unless the key is sent in the x-functions-key header or the code query
parameter.
*/
package httpapi
