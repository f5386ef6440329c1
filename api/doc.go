/*
Package api provides the wire contract between the registration form and the
signup API.

This package is organized into two subpackages:

1. clients - The HTTP client used by the registration form to submit payloads
2. signuphandler - The request handler of the signup API

# Payload Conventions

The registration payload is a flat JSON object with every form field. Two key
naming conventions exist and both are supported:

  - snake: firstname, middlename, lastname, suffix, blk_room, building, street,
    barangay, province, zip_code, contact_no, tel_no, email, valid_id_type,
    valid_id_number
  - camel: firstname, middlename, lastname, suffix, blkRoom, building, street,
    barangay, province, zipCode, contactNo, telNo, email, validIdType,
    validIdNumber

A form holds one FormState; Convention.Encode selects the serializer and
DecodePayload accepts either shape on the server side.

# Endpoints

  - POST /api/v3/users - Create an account (snake-case backend default)
  - POST /api/v3/users/signup - Create an account (camel-case backend default)
  - GET /api/v3/users/{account_number} - Retrieve a created account

Any 2xx status is a successful submission. Non-2xx responses surface to the
client as *StatusError.
*/
package api
