// Package minio provides an S3-compatible object source for bulk CSV loads.
//
// *Minio implements postgres.ObjectSource, so objects can be streamed
// straight into COPY without touching the local disk:
//
//	source, err := minio.NewClient(ctx, cfg, log)
//	if err != nil {
//	    return err
//	}
//	copied, err := pg.ImportCsvObject(ctx, source, "exports/users.csv", "users", postgres.CopyOptions{})
//
// Connection settings come from the MINIO_* environment variables; an empty
// MINIO_ENDPOINT leaves object storage disabled.
package minio
